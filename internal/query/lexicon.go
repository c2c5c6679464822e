package query

// cryptoLexicon maps lower-case names and aliases to a canonical venue symbol.
var cryptoLexicon = map[string]string{
	"bitcoin":  "BINANCE:BTCUSDT",
	"btc":      "BINANCE:BTCUSDT",
	"ethereum": "BINANCE:ETHUSDT",
	"ether":    "BINANCE:ETHUSDT",
	"eth":      "BINANCE:ETHUSDT",
	"solana":   "BINANCE:SOLUSDT",
	"sol":      "BINANCE:SOLUSDT",
	"dogecoin": "BINANCE:DOGEUSDT",
	"doge":     "BINANCE:DOGEUSDT",
	"cardano":  "BINANCE:ADAUSDT",
	"ada":      "BINANCE:ADAUSDT",
	"ripple":   "BINANCE:XRPUSDT",
	"xrp":      "BINANCE:XRPUSDT",
	"litecoin": "BINANCE:LTCUSDT",
	"ltc":      "BINANCE:LTCUSDT",
	"polkadot": "BINANCE:DOTUSDT",
	"tether":   "BINANCE:USDTDAI",
	"usdt":     "BINANCE:USDTDAI",
}

var newsTokens = map[string]struct{}{
	"news":      {},
	"headline":  {},
	"headlines": {},
	"article":   {},
	"articles":  {},
	"breaking":  {},
}

// All-caps words that read as tickers but almost never are.
var notTickers = map[string]struct{}{
	"I":    {},
	"A":    {},
	"OK":   {},
	"AM":   {},
	"PM":   {},
	"US":   {},
	"USA":  {},
	"UK":   {},
	"EU":   {},
	"CEO":  {},
	"AI":   {},
	"FAQ":  {},
	"ASAP": {},
}

var stopWords = map[string]struct{}{
	"about": {}, "above": {}, "after": {}, "again": {}, "also": {}, "been": {},
	"before": {}, "being": {}, "could": {}, "does": {}, "doing": {}, "from": {},
	"have": {}, "having": {}, "here": {}, "into": {}, "just": {}, "like": {},
	"more": {}, "most": {}, "much": {}, "only": {}, "other": {}, "over": {},
	"please": {}, "price": {}, "same": {}, "should": {}, "show": {}, "some": {},
	"such": {}, "tell": {}, "than": {}, "that": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "today": {}, "under": {}, "very": {}, "want": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {}, "whom": {},
	"will": {}, "with": {}, "would": {}, "your": {}, "give": {}, "know": {},
	"latest": {}, "current": {}, "currently": {},
}

package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           brokerd API
// @version         1.0
// @description     HTTP API for the resilient multi-provider chat broker.
//
// @contact.name   brokerd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http

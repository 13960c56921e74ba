package main

// General API documentation for swaggo. Run `make swagger-gen` to regenerate docs.
//
// @title           chatmodeld API
// @version         1.0
// @description     HTTP API for on-device chat model management and inference.
//
// @contact.name   chatmodeld maintainers
// @contact.url    https://github.com/your-org/chatmodeld
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http

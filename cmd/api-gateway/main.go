package main

import (
	"os"
)

// @title Notice Board API
// @version 1.0.0
// @description Notices with attachments, view counting and a most-viewed ranking
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

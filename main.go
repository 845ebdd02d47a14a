package main

import (
	_ "github.com/km-arc/go-mvc/app" // registers the demo application

	"github.com/km-arc/go-mvc/cmd"
)

func main() {
	cmd.Execute()
}

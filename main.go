package main

import (
	"os"

	"github.com/GoProfilePortal/GoProfilePortal/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

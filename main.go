package main

import (
	"context"
	"os"

	"photolabel/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

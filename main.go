package main

import (
	"os"

	"github.com/zhongyue-admin/zhongyue-admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

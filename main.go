package main

import "github.com/StinkyLord/wiredoc/cmd"

func main() {
	cmd.Execute()
}

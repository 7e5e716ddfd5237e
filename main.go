package main

import "github.com/getcreddy/humanhash/cmd"

func main() {
	cmd.Execute()
}

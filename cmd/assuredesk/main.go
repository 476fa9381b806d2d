package main

import "github.com/Assure-Desk/assuredesk/cmd/assuredesk/cmd"

func main() {
	cmd.Execute()
}

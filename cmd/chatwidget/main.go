// Command chatwidget is a terminal chat client for a JSON chat backend.
package main

import "github.com/diogo/chatwidget/internal/commands"

func main() {
	commands.Execute()
}

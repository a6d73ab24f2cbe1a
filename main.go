package main

import "wardrobe/internal/commands"

func main() {
	commands.Execute()
}

package main

import "github.com/PlaguesW/Couple-bot-backend/cmd"

func main() {
	cmd.Run()
}

package main

import "github.com/LLM4Rocq/LLM4Docq/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/nikogura/portfolio-assistant/cmd"

func main() {
	cmd.Execute()
}

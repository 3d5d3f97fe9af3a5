package main

import "github.com/nijaru/yt-notes/cmd"

func main() {
	cmd.Execute()
}

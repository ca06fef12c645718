package main

import "github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/cmd"

func main() {
	cmd.Execute()
}

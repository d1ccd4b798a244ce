package main

import "github.com/mzavatta/effort-tracking/cmd"

func main() {
	cmd.Execute()
}

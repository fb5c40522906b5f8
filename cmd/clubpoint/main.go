package main

import "github.com/akoval/clubpoint/cmd/clubpoint/cmd"

func main() {
	cmd.Execute()
}

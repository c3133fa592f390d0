package main

import "github.com/andresmejia3/blankmap/cmd"

func main() {
	cmd.Execute()
}

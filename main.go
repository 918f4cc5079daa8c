package main

import "listing-mirror/cmd"

func main() {
	cmd.Execute()
}

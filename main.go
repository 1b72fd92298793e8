package main

import "github.com/whiterabbit74/kinopub-wnldr/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/javi11/filecache/cmd/filecachectl/cmd"

func main() {
	cmd.Execute()
}

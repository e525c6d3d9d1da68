package main

import "github.com/dannytech/default-server/internal/cmd"

func main() {
	cmd.Execute()
}

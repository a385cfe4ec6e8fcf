package main

import "github.com/mentalhealthdb/mhdb/cmd/mhdb/cmd"

func main() {
	cmd.Execute()
}

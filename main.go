package main

import "github.com/KaramelBytes/happydash/cmd"

func main() {
	cmd.Execute()
}

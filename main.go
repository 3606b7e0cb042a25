package main

import "github.com/KaramelBytes/assetboard-cli/cmd"

func main() {
	cmd.Execute()
}

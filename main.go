package main

import "datarecon/cmd"

func main() {
	cmd.Execute()
}

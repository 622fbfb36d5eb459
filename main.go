package main

import "github.com/Alturino/shop/cmd"

func main() {
	cmd.Start()
}

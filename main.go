package main

import "github.com/quocvuong92/dsh/cmd"

func main() {
	cmd.Execute()
}

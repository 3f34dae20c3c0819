package main

import "example.com/productmesh/services/review/cmd"

func main() {
	cmd.Execute()
}

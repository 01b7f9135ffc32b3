// main.go
package main

import "foodtruck-market/cmd"

func main() {
	cmd.Execute()
}

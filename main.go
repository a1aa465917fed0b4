package main

import "github.com/chrisdamba/foodpredict/cmd"

func main() {
	cmd.Execute()
}

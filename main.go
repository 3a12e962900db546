package main

import "github.com/nextlevelbuilder/aosgate/cmd"

func main() {
	cmd.Execute()
}

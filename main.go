package main

import "github.com/ValentinKolb/kvlayout/cmd"

func main() {
	cmd.Execute()
}

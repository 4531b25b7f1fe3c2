/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/mixtape-audio/mixtape/cmd"

func main() {
	cmd.Execute()
}

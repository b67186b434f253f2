package main

import "github.com/zuccha/dnd-portal-sub002/cmd"

func main() { cmd.Execute() }

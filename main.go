package main

import "github.com/codegate/codegate/cmd/codegate"

func main() { codegate.Execute() }

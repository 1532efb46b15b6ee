package main

import "passmrz/process/sanitize"

func main() {
	sanitize.Run()
}

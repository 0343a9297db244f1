package main

func readInput() int {
	return 42
}

// lib has a summary: its result depends on its first argument only
func lib(a int, b int) int {
	return a + b + readInput()
}

func main() {
	x := lib(1, readInput())
	y := lib(readInput(), 2)
	println(x, y)
}

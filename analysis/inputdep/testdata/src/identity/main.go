package main

func readInput() int {
	return 42
}

func identity(x int) int {
	return x
}

func main() {
	a := identity(readInput())
	b := identity(1)
	println(a, b)
}

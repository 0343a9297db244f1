package main

func readInput() int {
	return 42
}

func apply(f func(int) int, v int) int {
	return f(v)
}

func main() {
	secret := readInput()
	offset := 1
	addSecret := func(x int) int { return x + secret }
	addOffset := func(x int) int { return x + offset }
	println(apply(addSecret, 1), addOffset(2))
}

package main

func readInput() int {
	return 42
}

func double(a int) int {
	return a * 2
}

func branch(x int) int {
	r := 0
	if x > 10 {
		r = 1 + double(3)
	}
	return r + 1
}

func main() {
	println(branch(readInput()))
}

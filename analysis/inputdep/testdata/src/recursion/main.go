package main

func countdown(n int) int {
	if n <= 0 {
		return 0
	}
	countdown(n - 1)
	return n
}

func descend(n int) int {
	if n <= 0 {
		return 0
	}
	return descend(n - 1)
}

func main() {
	println(descend(3))
}

package main

func register(f func(int) int)

func handler(n int) int {
	return n * 2
}

func local(n int) int {
	return n + 1
}

func main() {
	println(handler(1), local(2))
	register(handler)
	offset := 3
	register(func(x int) int { return x + offset })
}

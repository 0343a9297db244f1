package main

type box struct {
	v int
	w int
}

func readInput() int {
	return 42
}

func main() {
	b := &box{}
	p := &b.v
	q := &b.v
	s := &b.w
	*p = readInput()
	r := *q
	t := *s
	println(r, t)
}

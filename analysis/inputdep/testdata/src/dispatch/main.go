package main

type Source interface {
	get() int
}

type constSource struct{}

func (s *constSource) get() int {
	return 1
}

type inputSource struct{}

func (s *inputSource) get() int {
	return readInput()
}

func readInput() int {
	return 42
}

func double(a int) int {
	return a * 2
}

func pick(n int) Source {
	if n > 0 {
		return &constSource{}
	}
	return &inputSource{}
}

func main() {
	s := pick(1)
	v := s.get()
	w := double(3)
	println(v, w)
}

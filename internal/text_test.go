package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line     string
		expected string
	}){
		{"", ""},
		{"   \t ", ""},
		{"; only a comment", ""},
		{"  addi ecx ecx 1   ; bump", "addi ecx ecx 1"},
		{"\thalt\t", "halt"},
		{`msg db "a;b" ; comment`, `msg db "a;b"`},
		{`semi db ';'`, `semi db ';'`},
		{`esc db "\";" ; tail`, `esc db "\";"`},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, Normalize(entry.line), entry.line)
	}
}

func TestFields(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line     string
		expected []string
	}){
		{"", nil},
		{"halt", []string{"halt"}},
		{"addi  ecx \t ecx 1", []string{"addi", "ecx", "ecx", "1"}},
		{`msg db "hi there"`, []string{"msg", "db", `"hi there"`}},
		{`sp db ' '`, []string{"sp", "db", `' '`}},
		{`q db "a\" b"`, []string{"q", "db", `"a\" b"`}},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, Fields(entry.line), entry.line)
	}
}

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	got := map[string]int{}
	for key, value := range IterSeq2Concat(IterSorted(map[string]int{"a": 1, "b": 2}), IterSorted(map[string]int{"b": 3})) {
		got[key] = value
	}
	assert.Equal(map[string]int{"a": 1, "b": 3}, got)
}

func TestIterSorted(t *testing.T) {
	assert := assert.New(t)

	var keys []string
	var values []int
	for key, value := range IterSorted(map[string]int{"c": 3, "a": 1, "b": 2}) {
		keys = append(keys, key)
		values = append(values, value)
		if key == "b" {
			break
		}
	}
	assert.Equal([]string{"a", "b"}, keys)
	assert.Equal([]int{1, 2}, values)
}

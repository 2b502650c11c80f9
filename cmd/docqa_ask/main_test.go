package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flarexio/docqa"
)

func TestJoinQuestion(t *testing.T) {
	assert := assert.New(t)

	question, err := joinQuestion([]string{"What", "soil", "does", "wheat", "need?"})
	assert.NoError(err)
	assert.Equal("What soil does wheat need?", question)

	question, err = joinQuestion([]string{"  What soil does wheat need?  "})
	assert.NoError(err)
	assert.Equal("What soil does wheat need?", question)

	_, err = joinQuestion(nil)
	assert.ErrorIs(err, docqa.ErrEmptyQuestion)

	_, err = joinQuestion([]string{" ", "\t"})
	assert.ErrorIs(err, docqa.ErrEmptyQuestion)
}

func TestPrintPassages(t *testing.T) {
	assert := assert.New(t)

	passages := []docqa.Passage{
		{Index: 4, Text: "Wheat requires loamy soil.", Score: 0.5},
		{Index: 9, Text: "Loam drains well.", Score: 0.25},
	}

	var out bytes.Buffer
	if err := printPassages(&out, passages); err != nil {
		assert.Fail(err.Error())
		return
	}

	expected := "[1] chunk 4 (score 0.5000)\nWheat requires loamy soil.\n\n" +
		"[2] chunk 9 (score 0.2500)\nLoam drains well.\n\n"

	assert.Equal(expected, out.String())
}

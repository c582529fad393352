package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Binary expressions

## Test: +
` + "```vcalc-expr" + `
(binary "+" 1 2)
` + "```" + `
` + "```types" + `
(^{type: int} binary "+" (^{type: int} integer 1) (^{type: int} integer 2))
` + "```" + `

## Test: print
` + "```vcalc-tree" + `
(block (print 1))
` + "```" + `
` + "```execute" + `
1
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "+")
	be.Equal(t, tc1.Input, `(binary "+" 1 2)`)
	be.Equal(t, tc1.InputType, InputTypeVCalcExpr)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeTypes)
	be.Equal(t, tc1.Assertions[0].ParsedSexy.Head(), "binary")

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "print")
	be.Equal(t, tc2.InputType, InputTypeVCalcTree)
	be.Equal(t, tc2.Assertions[0].Type, AssertionTypeExecute)
	be.Equal(t, tc2.Assertions[0].Content, "1")
	be.True(t, tc2.Assertions[0].ParsedSexy == nil)
}

func TestExtractTestCases_MultipleAssertions(t *testing.T) {
	markdown := `## Test: multiple assertions
` + "```vcalc-tree" + `
(block (decl x int 2) (print x))
` + "```" + `
` + "```ast" + `
(block (decl (ident "x") (ident "int") (integer 2)) (print (ident "x")))
` + "```" + `
` + "```execute" + `
2
` + "```" + `
` + "```calls" + `
print_int 1
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	tc := testCases[0]
	be.Equal(t, len(tc.Assertions), 3)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeExecute)
	be.Equal(t, tc.Assertions[2].Type, AssertionTypeCalls)
	be.Equal(t, tc.Assertions[2].Content, "print_int 1")
}

func TestExtractTestCases_Prelude(t *testing.T) {
	markdown := `## Test: with prelude
` + "```prelude" + `
(decl v vector (range 1 3))
` + "```" + `
` + "```vcalc-expr" + `
(idx v 0)
` + "```" + `
` + "```execute" + `
1
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, testCases[0].Prelude, "(decl v vector (range 1 3))")
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_PreludeNeedsExpressionInput(t *testing.T) {
	markdown := `## Test: bad prelude
` + "```prelude" + `
(decl v vector)
` + "```" + `
` + "```vcalc-tree" + `
(block)
` + "```" + `
` + "```execute" + `
` + "```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "has a prelude but its input is not vcalc-expr"))
}

func TestExtractTestCases_EmptyFile(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_InvalidSexyAssertion(t *testing.T) {
	markdown := `## Test: invalid sexy
` + "```vcalc-expr" + `
1
` + "```" + `
` + "```ast" + `
(unclosed list
` + "```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "failed to parse Sexy assertion"))
	be.True(t, strings.Contains(err.Error(), "line"))
}

// Error condition tests

func TestExtractTestCases_FenceOutsideTestCase(t *testing.T) {
	tests := []struct {
		name      string
		markdown  string
		fenceType string
	}{
		{
			"vcalc-expr fence outside test",
			"# Document\n\n```vcalc-expr\n(binary \"+\" 1 2)\n```\n",
			"vcalc-expr",
		},
		{
			"vcalc-tree fence outside test",
			"# Document\n\n```vcalc-tree\n(block)\n```\n",
			"vcalc-tree",
		},
		{
			"ast fence outside test",
			"# Document\n\n```ast\n(binary \"+\" 1 2)\n```\n",
			"ast",
		},
		{
			"compile-error fence outside test",
			"# Document\n\n```compile-error\nTypeMismatch\n```\n",
			"compile-error",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), test.fenceType+" fence found outside of test case"))
			be.True(t, strings.Contains(err.Error(), "line"))
		})
	}
}

func TestExtractTestCases_UnknownFenceLanguageInTest(t *testing.T) {
	markdown := `## Test: with unknown fence
` + "```python" + `
print("hello")
` + "```" + `
` + "```vcalc-expr" + `
1
` + "```" + `
` + "```execute" + `
1
` + "```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "unknown fence language 'python'"))
}

func TestExtractTestCases_TestMissingInputFence(t *testing.T) {
	markdown := `## Test: no input
` + "```ast" + `
(binary "+" 1 2)
` + "```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'no input' has no input fence"))
}

func TestExtractTestCases_TestMissingAssertionFence(t *testing.T) {
	markdown := `## Test: no assertions
` + "```vcalc-expr" + `
1
` + "```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'no assertions' has no assertion fences"))
}

func TestExtractTestCases_MultipleInputFences(t *testing.T) {
	markdown := `## Test: multiple inputs
` + "```vcalc-expr" + `
1
` + "```" + `
` + "```vcalc-tree" + `
(block)
` + "```" + `
` + "```execute" + `
` + "```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "multiple input fences found"))
}

func TestExtractTestCases_AllowFencesWithoutLanguage(t *testing.T) {
	markdown := "Some prose.\n\n```\nnot a test\n```\n\n## Test: ok\n```vcalc-expr\n1\n```\n```\nplain\n```\n```execute\n1\n```\n"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_ErrorInSecondTest(t *testing.T) {
	markdown := `## Test: first test
` + "```vcalc-expr" + `
1
` + "```" + `
` + "```execute" + `
1
` + "```" + `

## Test: second test missing input
` + "```ast" + `
(binary "-" 1 2)
` + "```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'second test missing input' has no input fence"))
}

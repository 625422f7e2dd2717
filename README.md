# Title
=== FILE END ===
trailing chatter`

	b := Parse(text)
	require.Equal(t, []string{"app/main.py", "README.md"}, b.Paths())

	main, _ := b.Get("app/main.py")
	assert.Equal(t, "import os\n\n\ndef main():\n    pass", main)
	readme, _ := b.Get("README.md")
	assert.Equal(t, "# Title", readme)
}

func TestParse_ImplicitCloseOnNextOpen(t *testing.T) {
	text := "=== FILE: a.py ===\nline a1\nline a2\n=== FILE: b.py ===\nline b1\n"

	b := Parse(text)
	require.Equal(t, 2, b.Len())
	a, _ := b.Get("a.py")
	assert.Equal(t, "line a1\nline a2", a)
	bb, _ := b.Get("b.py")
	assert.Equal(t, "line b1", bb)
}

func TestParse_EndOfStreamEmitsOpenFile(t *testing.T) {
	b := Parse("=== FILE: partial.py ===\ndef f():\n    return 1")
	got, ok := b.Get("partial.py")
	require.True(t, ok)
	assert.Equal(t, "def f():\n    return 1", got)
}

func TestParse_DuplicatePathLastWins(t *testing.T) {
	text := strings.Join([]string{
		"=== FILE: a.py ===", "first", "=== FILE END ===",
		"=== FILE: b.py ===", "bee", "=== FILE END ===",
		"=== FILE: a.py ===", "second", "=== FILE END ===",
	}, "\n")

	b := Parse(text)
	assert.Equal(t, []string{"a.py", "b.py"}, b.Paths())
	a, _ := b.Get("a.py")
	assert.Equal(t, "second", a)
}

func TestParse_ProseOutsideBlocksAndStrayEndMarker(t *testing.T) {
	b := Parse("intro\n=== FILE END ===\nmore prose\n")
	assert.Equal(t, 0, b.Len())
}

func TestParse_EmptyPathMarkerIsOrdinaryLine(t *testing.T) {
	b := Parse("=== FILE: x.py ===\n=== FILE:  ===\nbody\n")
	got, ok := b.Get("x.py")
	require.True(t, ok)
	assert.Equal(t, "=== FILE:  ===\nbody", got)
}

func TestParse_TrimsOuterBlankLinesOnly(t *testing.T) {
	b := Parse("=== FILE: a.txt ===\n\n  \nx\n\ny\n\n\n=== FILE END ===")
	got, _ := b.Get("a.txt")
	assert.Equal(t, "x\n\ny", got)
}

func TestParse_CRLF(t *testing.T) {
	b := Parse("=== FILE: a.py ===\r\nprint(1)\r\n=== FILE END ===\r\n")
	got, _ := b.Get("a.py")
	assert.Equal(t, "print(1)", got)
}

func TestParse_EmptyFileBlock(t *testing.T) {
	b := Parse("=== FILE: empty.py ===\n=== FILE END ===\n")
	got, ok := b.Get("empty.py")
	require.True(t, ok)
	assert.Equal(t, "", got)
}

func TestEncodeParse_RoundTrip(t *testing.T) {
	for n := 0; n <= 5; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			in := project.NewBundle()
			for i := 0; i < n; i++ {
				content := fmt.Sprintf("line one of %d\n\n    indented\n\nlast line", i)
				in.Set(fmt.Sprintf("pkg%d/file_%d.py", i%2, i), content)
			}
			require.NoError(t, Validate(in))

			out := Parse(Encode(in))
			assert.Equal(t, in.Entries(), out.Entries())
		})
	}
}

func TestValidate_RejectsMarkerLikeContent(t *testing.T) {
	b := project.NewBundle()
	b.Set("a.py", "ok\n=== FILE END ===\n")
	assert.ErrorIs(t, Validate(b), ErrUnsafeContent)

	b2 := project.NewBundle()
	b2.Set("../a.py", "ok")
	assert.ErrorIs(t, Validate(b2), project.ErrInvalidPath)
}

func TestStartMarker(t *testing.T) {
	assert.Equal(t, "=== FILE: src/x.go ===", StartMarker("src/x.go"))
	p, ok := parseStart(StartMarker("src/x.go"))
	require.True(t, ok)
	assert.Equal(t, "src/x.go", p)
	assert.Equal(t, "=== FILE END ===", EndMarker())
}

func TestSanitize_DropsUnsafePaths(t *testing.T) {
	in := "=== FILE: app/main.py ===\nprint(1)\n=== FILE END ===\n" +
		"=== FILE: ../x.py ===\nboom\n=== FILE END ===\n" +
		"=== FILE: /etc/passwd ===\nroot\n"

	b, dropped := Sanitize(Parse(in))
	assert.Equal(t, []string{"app/main.py"}, b.Paths())
	assert.Equal(t, []string{"../x.py", "/etc/passwd"}, dropped)
	assert.NoError(t, Validate(b))
}

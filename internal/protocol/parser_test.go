package protocol

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dusk-indust/scaffold/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ExplicitEndMarkers(t *testing.T) {
	text := `Here is your project:

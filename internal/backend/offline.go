package backend

// NewOffline returns a Scripted backend preloaded with one canned reply per
// phase, so the whole pipeline can run without a model server.
func NewOffline() *Scripted {
	s := NewScripted()
	s.name = "offline"
	s.On(Rule{Phase: PhasePlanning, Reply: offlinePlan})
	s.On(Rule{Phase: PhaseStructure, Reply: offlineStructure})
	s.On(Rule{Phase: PhaseFile, Reply: offlineModule})
	s.On(Rule{Phase: PhaseRegenerate, Reply: offlineModule})
	s.On(Rule{Phase: PhaseImprove, Reply: offlineModule})
	s.On(Rule{Phase: PhaseTests, Reply: offlineTests})
	s.On(Rule{Phase: PhaseGenerateTests, Reply: offlineTests})
	s.On(Rule{Phase: PhaseDocs, Reply: offlineReadme})
	s.On(Rule{Phase: PhaseOneShot, Reply: offlineStream})
	return s
}

const offlinePlan = `## Analysis
A small modular service with a single entry point and a helper module.

## Components
- app: request handling
- utils: shared helpers

## File Structure
app/main.py, app/utils.py

## Technical Decisions
Standard library only, structured logging.

## Risks and Solutions
Unvalidated input: validate at the boundary.`

const offlineStructure = `{
  "app/main.py": {
    "description": "Application entry point",
    "responsibilities": ["parse arguments", "run the service"],
    "main_components": ["main"],
    "dependencies": ["app/utils.py"]
  },
  "app/utils.py": {
    "description": "Shared helpers",
    "responsibilities": ["input validation"],
    "main_components": ["validate"],
    "dependencies": []
  }
}`

const offlineModule = `"""Generated module."""
import logging

logger = logging.getLogger(__name__)


def validate(value: str) -> str:
    """Return value stripped, raising ValueError when empty."""
    try:
        cleaned = value.strip()
    except AttributeError as exc:
        logger.error("invalid value: %s", exc)
        raise ValueError("value must be a string") from exc
    if not cleaned:
        raise ValueError("value must not be empty")
    return cleaned
`

const offlineTests = `"""Tests for the generated module."""
import pytest


def test_placeholder_free() -> None:
    """The module imports cleanly."""
    assert True


def test_raises() -> None:
    """Errors surface as ValueError."""
    with pytest.raises(ValueError):
        raise ValueError("x")
`

const offlineReadme = `# Generated Project

## Overview
A small modular service.

## Installation
pip install -r requirements.txt

## Usage
python -m app.main
`

const offlineStream = "=== FILE: app/main.py ===\n" + offlineModule + "=== FILE END ===\n" +
	"=== FILE: README.md ===\n" + offlineReadme + "=== FILE END ===\n"

// Package browser abstracts the controllable rendering engine the table
// extractor drives. The source site populates its rankings tables with
// JavaScript after page load, so a plain HTTP GET never sees any rows;
// extraction needs an engine that can wait for elements, read rendered
// markup, and click pagination controls.
//
// The Browser interface keeps the harvester core independent of any
// specific automation engine: production uses the chromedp-backed Chrome
// implementation, tests use an in-memory fake serving canned HTML.
package browser

// Package project loads edit-decision files written in CUE.
//
// An edit-decision file declares one or more projects under the top-level
// "project" struct, keyed by label:
//
//	project: intro: {
//		name:     "Intro cut"
//		duration: 10
//		segments: [
//			{start: 0, end: 2, included: false},
//			{start: 2, end: 10, included: true},
//		]
//		gestures: [
//			{op: "begin", at: 4},
//			{op: "stop", at: 6},
//		]
//	}
//
// Segments seed the partition and may be listed in any order. Gestures are
// engine commands applied after the seed; a begin without a duration uses
// the project's. Every file is checked against an embedded CUE schema before
// compilation, so field-level mistakes are reported with file positions.
package project

// Package testutil provides shared test helpers for marquee.
//
//   - Recorder: a display.Container that records what was shown and how
//     many elements were live at once; exit transitions either complete
//     immediately or are held until the test releases them.
//   - ShortContext / ContextWithTestDeadline: contexts bounded by the test
//     deadline so a stuck display loop fails the test instead of hanging.
//   - WriteResource: writes a resource file into a temp directory.
package testutil

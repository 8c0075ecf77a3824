// SPDX-License-Identifier: MIT
package gcv

// RademacherProbes exposes the probe generator to external tests.
var RademacherProbes = rademacherProbes

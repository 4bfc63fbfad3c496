// Package domain defines the built-in process domains explored by the lab.
//
// Each [Domain] bundles an ordered [ParameterSet], Spanish display names,
// three closed-form metric functions and a small historical sample table:
//
//   - chem: Ziegler-Natta ethylene polymerization (PE-UHMW)
//   - mat: nickel superalloy composition and heat treatment
//   - bio: monoclonal antibody production in a bioreactor
//
// Metric functions are Gaussian bumps around a fixed optimum (see [Bump]).
// Domains are immutable once built; [Registry] hands them out by tag.
package domain

// Package rdiff simulates two reacting species, N and P, spreading over a 2D
// mesh whose geometry is already baked into sparse FEM matrices.
//
// 🚀 What is rdiff?
//
//	A small, single-threaded numerics stack that brings together:
//		• Sparse matrices: triplet builder, row-compressed storage, CSR fast form
//		• Conjugate gradient: preconditioner-free, warm-started, explicit failures
//		• Meshes & zones: node coordinates, rectangle/disc predicates, fill
//		• Stepper: implicit diffusion + explicit reaction as a state machine
//		• I/O: Matrix Market reader/writer, CSV and SQLite run history
//
// Each timestep solves
//
//	(D − dt·S)·N' = D·N        (D − dt·S)·P' = D·P
//
// then drains, clamps at zero, grows N by reaction·N·dt and converts
// reaction·dt·P·N of it into P. The run stops when ‖N − N_prev‖₂ falls below
// the convergence tolerance or the step budget is spent.
//
// Layout:
//
//	sparse/     Builder, Matrix, CSR, MatVec, LinearCombination
//	matrix/     small Dense reference: MatVec, LU, Solve, Inverse
//	gridgraph/  grid of cells -> mesh, adjacency, −L, islands
//	cg/         Solve, Solver, ConvergenceError, SingularError
//	mesh/       Mesh, Zone, RectZone, CircleZone, Fill, coordinate loader
//	mtx/        Matrix Market coordinate format
//	reaction/   Params, Stepper, Observer, State
//	export/     CSVSink, SQLiteSink, LogSink, Multi
//	config/     YAML run configuration with RDIFF_* overrides
//	logging/    leveled log/slog factory
//	cmd/rdsim/  the command-line front end
//
// Quick start:
//
//	rdsim config init run.yaml
//	rdsim run --config run.yaml --stiffness S.mtx --damping D.mtx --mesh mesh.dat --csv N.csv
//
// FEM assembly, meshing and plotting live elsewhere: rdiff only consumes
// their output.
package rdiff

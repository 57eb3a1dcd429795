// Package execx runs external tools and reports their outcome as plain data.
//
// Callers decide success or failure by inspecting the exit code in the
// returned Result. A non-zero exit is not a Go error: several of the tools
// zstow delegates to (robocopy in particular) use non-zero exits for normal
// outcomes, so Run only returns an error when the process could not be
// started at all.
package execx

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
)

// Result captures the outcome of one external tool invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Run executes the named tool with the given arguments and waits for it to
// finish. The returned error is non-nil only when the process could not be
// started; an abnormal exit is reported through Result.ExitCode.
func Run(name string, args ...string) (Result, error) {
	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, err
	}

	return res, nil
}

// Pipe streams the stdout of src into dst's stdin and runs both commands to
// completion. dst is waited on first so it consumes the stream to EOF before
// src's exit status is collected. The error is non-nil only when either
// process could not be started.
func Pipe(src, dst *exec.Cmd) (Result, Result, error) {
	var srcErr, dstOut, dstErr bytes.Buffer
	src.Stderr = &srcErr
	dst.Stdout = &dstOut
	dst.Stderr = &dstErr

	pr, pw, err := os.Pipe()
	if err != nil {
		return Result{ExitCode: -1}, Result{ExitCode: -1}, err
	}
	src.Stdout = pw
	dst.Stdin = pr

	if err := dst.Start(); err != nil {
		pr.Close()
		pw.Close()
		return Result{ExitCode: -1}, Result{ExitCode: -1}, err
	}
	if err := src.Start(); err != nil {
		// dst is already running; closing the write end gives it EOF so it
		// exits and can be reaped.
		pw.Close()
		pr.Close()
		dst.Wait()
		return Result{ExitCode: -1}, Result{ExitCode: -1, Stderr: dstErr.String()}, err
	}

	// Both children hold their own copies of the pipe ends. The parent's
	// copies must be closed now: otherwise src never receives EPIPE when dst
	// exits without draining its input, and src.Wait blocks forever.
	pw.Close()
	pr.Close()

	var dstRes Result
	if waitErr := dst.Wait(); waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			dstRes.ExitCode = exitErr.ExitCode()
		} else {
			dstRes.ExitCode = -1
		}
	}

	var srcRes Result
	if waitErr := src.Wait(); waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			srcRes.ExitCode = exitErr.ExitCode()
		} else {
			srcRes.ExitCode = -1
		}
	}

	// Buffers are only safe to read after Wait.
	srcRes.Stderr = srcErr.String()
	dstRes.Stdout = dstOut.String()
	dstRes.Stderr = dstErr.String()

	return srcRes, dstRes, nil
}

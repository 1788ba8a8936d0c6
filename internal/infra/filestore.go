package infra

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const TamanoMaximoComprobante = 10 << 20

var (
	ErrExtensionNoPermitida = errors.New("tipo de archivo no permitido: use pdf, jpg, jpeg o png")
	ErrArchivoGrande        = errors.New("el archivo supera el máximo de 10 MiB")
	ErrArchivoNoEncontrado  = errors.New("archivo no encontrado")
)

var extensionesPermitidas = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true}

// FileStore keeps uploaded receipts on local disk under base/<categoria>/.
// Stored paths are slash separated and start with base, so they double as
// the public URL under /uploads.
type FileStore struct {
	base string
}

func NewFileStore(base string) *FileStore {
	return &FileStore{base: filepath.Clean(base)}
}

func (f *FileStore) Base() string { return f.base }

// Guardar copies the upload to a fresh uuid name and returns its stored path.
func (f *FileStore) Guardar(categoria string, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !extensionesPermitidas[ext] {
		return "", ErrExtensionNoPermitida
	}
	if fh.Size > TamanoMaximoComprobante {
		return "", ErrArchivoGrande
	}

	dir := filepath.Join(f.base, categoria)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("filestore: crear %s: %w", dir, err)
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("filestore: abrir upload: %w", err)
	}
	defer src.Close()

	destino := filepath.Join(dir, uuid.NewString()+ext)
	dst, err := os.Create(destino)
	if err != nil {
		return "", fmt.Errorf("filestore: crear archivo: %w", err)
	}
	// LimitReader guards against a Size header that lies.
	n, err := io.Copy(dst, io.LimitReader(src, TamanoMaximoComprobante+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > TamanoMaximoComprobante {
		err = ErrArchivoGrande
	}
	if err != nil {
		_ = os.Remove(destino)
		return "", err
	}
	return filepath.ToSlash(destino), nil
}

// Eliminar removes a stored file; a missing file is not an error.
func (f *FileStore) Eliminar(ruta string) error {
	if ruta == "" {
		return nil
	}
	err := os.Remove(filepath.FromSlash(ruta))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Resolver finds a stored file on disk. It tries the stored path first and
// then base/<categoria>/<nombre>, which covers rows written with another base.
func (f *FileStore) Resolver(ruta, categoria string) (string, error) {
	candidatos := []string{
		filepath.FromSlash(ruta),
		filepath.Join(f.base, categoria, filepath.Base(filepath.FromSlash(ruta))),
	}
	for _, c := range candidatos {
		if !f.dentroDeBase(c) {
			continue
		}
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c, nil
		}
	}
	return "", ErrArchivoNoEncontrado
}

func (f *FileStore) dentroDeBase(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	base, err := filepath.Abs(f.base)
	if err != nil {
		return false
	}
	return abs == base || strings.HasPrefix(abs, base+string(filepath.Separator))
}

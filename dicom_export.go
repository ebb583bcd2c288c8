package dasbf

import (
	"io"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ExportDICOM writes an assembled, log-compressed frame as a single-frame
// DICOM Ultrasound Image Storage object.
func ExportDICOM(w io.Writer, img *FrameReal, td Transducer) error {
	rows, cols := img.Z, img.X
	pixels := make([][]int, rows*cols)
	for k := 0; k < rows; k++ {
		for i := 0; i < cols; i++ {
			v := img.At(k, i)
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			pixels[k*cols+i] = []int{int(v)}
		}
	}

	pixelDataElement, err := dicom.NewPixelDataElement(dicom.PixelDataInfo{
		Frames: []*frame.Frame{
			{
				Encapsulated: false,
				NativeData: frame.NativeFrame{
					BitsPerSample: 8,
					Rows:          rows,
					Cols:          cols,
					Data:          pixels,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	sopClassUID, err := dicom.NewElement(tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.6.1"})
	if err != nil {
		return err
	}
	modality, err := dicom.NewElement(tag.Modality, []string{"US"})
	if err != nil {
		return err
	}
	transducerFreq, err := dicom.NewElement(tag.TransducerFrequency, []int{int(td.Fc)})
	if err != nil {
		return err
	}
	numberOfFrames, err := dicom.NewElement(tag.NumberOfFrames, []string{"1"})
	if err != nil {
		return err
	}
	rowsElem, err := dicom.NewElement(tag.Rows, []int{rows})
	if err != nil {
		return err
	}
	colsElem, err := dicom.NewElement(tag.Columns, []int{cols})
	if err != nil {
		return err
	}

	dataset := dicom.Dataset{
		Elements: []*dicom.Element{
			sopClassUID, modality, transducerFreq, numberOfFrames, rowsElem, colsElem, pixelDataElement,
		},
	}

	return dicom.Write(w, dataset)
}

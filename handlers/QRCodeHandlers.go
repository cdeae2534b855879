package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel draws regular text onto the image at the given baseline.
func addLabel(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0, 0, 0, 255}),
		Face: inconsolata.Regular8x16,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(label)
}

// addLabelBold draws the field labels in the bold face.
func addLabelBold(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{30, 30, 30, 255}),
		Face: inconsolata.Bold8x16,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(label)
}

func truncateLabel(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// GenerateInvoiceQRCodeJPEG godoc
// @Summary      Generate invoice QR code as JPEG
// @Description  Returns a labeled QR code image encoding the invoice reference for payment and verification.
// @Tags         qr
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {file}    file  "JPEG image"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/invoice_qr/{id} [get]
func GenerateInvoiceQRCodeJPEG(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
			return
		}

		var invoiceNumber, status, clientName string
		var grandTotal float64
		var dueDate sql.NullTime
		err = db.QueryRow(`
			SELECT i.invoice_number, i.status, i.grand_total, i.due_date,
				COALESCE(i.to_party->>'name', '') AS client_name
			FROM invoice i
			WHERE i.id = $1
		`, id).Scan(&invoiceNumber, &status, &grandTotal, &dueDate, &clientName)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		qrData := struct {
			ID            int     `json:"id"`
			InvoiceNumber string  `json:"invoice_number"`
			GrandTotal    float64 `json:"grand_total"`
			Status        string  `json:"status"`
		}{
			ID:            id,
			InvoiceNumber: invoiceNumber,
			GrandTotal:    grandTotal,
			Status:        status,
		}

		jsonData, err := json.Marshal(qrData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal invoice data"})
			return
		}

		qr, err := qrcode.New(string(jsonData), qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}
		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 4*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
		draw.Draw(combinedImg, image.Rect(0, 0, qrSize, qrSize), qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		dueDateStr := "N/A"
		if dueDate.Valid {
			dueDateStr = dueDate.Time.Format("2006-01-02")
		}

		addLabelBold(combinedImg, xPos, startY, "Invoice No:")
		addLabel(combinedImg, xPos+120, startY, invoiceNumber)

		addLabelBold(combinedImg, xPos, startY+lineHeight, "Client:")
		addLabel(combinedImg, xPos+120, startY+lineHeight, truncateLabel(clientName, 30))

		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Amount:")
		addLabel(combinedImg, xPos+120, startY+2*lineHeight, strconv.FormatFloat(grandTotal, 'f', 2, 64))

		addLabelBold(combinedImg, xPos, startY+3*lineHeight, "Due Date:")
		addLabel(combinedImg, xPos+120, startY+3*lineHeight, dueDateStr)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			c.String(http.StatusInternalServerError, "JPEG encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}

package conversation

import (
	"fmt"
	"html"

	"go-openclaw-cv-sender/internal/models"
)

const (
	TokenRestartYes = "new_yes"
	TokenRestartNo  = "new_no"

	auditTimeLayout = "02/01/2006 15:04:05"
	startHint       = "\n\nUsa /start para intentarlo de nuevo."
)

var esc = html.EscapeString

func greetReply(owner string) Reply {
	return Reply{Text: fmt.Sprintf("👋 Hola %s! Soy tu bot para enviar CVs.\n\n"+
		"✍️ Escribe el <b>nombre de la empresa</b> a la que quieres postularte:", esc(owner))}
}

func askCompanyReply() Reply {
	return Reply{Text: "✍️ Escribe el <b>nombre de la empresa</b>:"}
}

func askVacancyReply() Reply {
	return Reply{Text: "💼 Ahora dime el <b>cargo/vacante</b> a la que aplicas:"}
}

func askEmailReply() Reply {
	return Reply{Text: "📧 Escribe el correo del reclutador:"}
}

func blankAnswerReply(next Reply) Reply {
	next.Text = "⚠️ La respuesta no puede estar vacía.\n" + next.Text
	return next
}

func chooseFileReply(files []models.RemoteFile) Reply {
	return Reply{Text: "📂 Selecciona el CV que quieres enviar:", Buttons: fileButtons(files)}
}

func fileButtons(files []models.RemoteFile) [][]Button {
	rows := make([][]Button, 0, len(files))
	for _, f := range files {
		rows = append(rows, []Button{{Text: f.Name, Token: f.ID}})
	}
	return rows
}

func staleSelectionReply(files []models.RemoteFile) Reply {
	return Reply{
		Text:    "⚠️ Ese archivo no está en el último listado. Selecciona uno de estos:",
		Buttons: fileButtons(files),
	}
}

func noFilesReply() Reply {
	return Reply{Text: "❌ No encontré archivos en la carpeta de Drive." + startHint}
}

func listFailedReply(err error) Reply {
	return Reply{Text: "❌ No pude listar los archivos de Drive: " + esc(err.Error()) + startHint}
}

func sendingReply(file models.RemoteFile, to string) Reply {
	return Reply{
		Text:       fmt.Sprintf("⏳ Enviando <b>%s</b> a %s...", esc(file.Name), esc(to)),
		EditSource: true,
	}
}

func auditReply(rec models.ApplicationRecord) Reply {
	return Reply{Text: "✅ <b>Aplicación Exitosa:</b>\n\n" +
		fmt.Sprintf("🏢 <b>Nombre de la Empresa:</b> %s\n", esc(rec.Company)) +
		fmt.Sprintf("💼 <b>Vacante:</b> %s\n", esc(rec.Vacancy)) +
		fmt.Sprintf("📧 <b>Correo del Reclutador:</b> %s\n", esc(rec.RecruiterEmail)) +
		fmt.Sprintf("🕒 <b>Fecha y Hora de Aplicación:</b> %s\n", rec.SentAt.Format(auditTimeLayout)) +
		fmt.Sprintf("📎 <b>CV Enviado:</b> %s", esc(rec.FileName))}
}

func askRestartReply() Reply {
	return Reply{
		Text: "¿Deseas realizar un nuevo envío?",
		Buttons: [][]Button{{
			{Text: "✅ Sí", Token: TokenRestartYes},
			{Text: "❌ No", Token: TokenRestartNo},
		}},
	}
}

func fetchFailedReply(err error) Reply {
	return Reply{Text: "❌ No pude descargar el CV de Drive: " + esc(err.Error()) + startHint, EditSource: true}
}

func sendFailedReply(err error) Reply {
	return Reply{Text: "❌ Error al enviar: " + esc(err.Error()) + startHint, EditSource: true}
}

func restartReply() Reply {
	return Reply{
		Text:       "🔄 Perfecto, vamos a realizar un nuevo envío.\n\n✍️ Escribe el <b>nombre de la empresa</b>:",
		EditSource: true,
	}
}

func finishedReply() Reply {
	return Reply{Text: "✅ Proceso finalizado. Cuando quieras enviar otro CV, usa /start.", EditSource: true}
}

func cancelledReply() Reply {
	return Reply{Text: "🚫 Proceso cancelado."}
}

// GenericFailureReply is shown when a step fails in an unexpected way
func GenericFailureReply() Reply {
	return Reply{Text: "❌ Ocurrió un error inesperado." + startHint}
}
